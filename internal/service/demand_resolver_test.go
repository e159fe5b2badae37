package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-coverage-api/internal/models"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

func shiftPtr(code models.ShiftCode) *models.ShiftCode {
	return &code
}

func patternPtr(p models.WeekdayPattern) *models.WeekdayPattern {
	return &p
}

func testQualifications() []models.Qualification {
	return []models.Qualification{
		{ID: "icu", Label: "ICU", PriorityRank: 1, Active: true},
		{ID: "rn", Label: "Registered nurse", PriorityRank: 5, Active: true},
		{ID: "aux", Label: "Auxiliary", PriorityRank: 9, Active: true},
	}
}

func qualificationIDs(lines []models.DemandLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.QualificationID)
	}
	return out
}

func TestDemandResolverPatternTable(t *testing.T) {
	resolver := NewDemandResolver(testQualifications(), false)
	saturday := date("2024-01-13")
	sunday := date("2024-01-14")

	cases := []struct {
		name    string
		pattern models.WeekdayPattern
		day     time.Time
		want    map[models.ShiftCode]bool
	}{
		{"mo-fr saturday", models.PatternMonFri, saturday, map[models.ShiftCode]bool{models.ShiftEarly: false, models.ShiftLate: false, models.ShiftNight: false}},
		{"mo-sa saturday", models.PatternMonSatAll, saturday, map[models.ShiftCode]bool{models.ShiftEarly: true, models.ShiftLate: true, models.ShiftNight: true}},
		{"saturday early only", models.PatternMonFriSatEarly, saturday, map[models.ShiftCode]bool{models.ShiftEarly: true, models.ShiftLate: false, models.ShiftNight: false}},
		{"saturday without night", models.PatternMonFriSatNoNight, saturday, map[models.ShiftCode]bool{models.ShiftEarly: true, models.ShiftLate: true, models.ShiftNight: false}},
		{"so-fr sunday", models.PatternSunFri, sunday, map[models.ShiftCode]bool{models.ShiftEarly: false, models.ShiftLate: false, models.ShiftNight: true}},
		{"so-fr saturday", models.PatternSunFri, saturday, map[models.ShiftCode]bool{models.ShiftEarly: false, models.ShiftLate: false, models.ShiftNight: false}},
		{"so-fr friday", models.PatternSunFri, date("2024-01-12"), map[models.ShiftCode]bool{models.ShiftEarly: true, models.ShiftLate: true, models.ShiftNight: false}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rules := []models.DemandRule{{
				ID: "r1", QualificationID: "rn", RequiredCount: 1,
				ValidFrom: date("2024-01-01"), Continuous: true, WeekdayPattern: patternPtr(tc.pattern),
			}}
			for shift, want := range tc.want {
				res, err := resolver.Resolve(tc.day, shift, rules)
				require.NoError(t, err)
				assert.Equal(t, want, len(res.Lines) == 1, "shift %s", shift)
			}
		})
	}
}

func TestDemandResolverBoundaryClipping(t *testing.T) {
	resolver := NewDemandResolver(testQualifications(), false)
	rules := []models.DemandRule{{
		ID: "r1", QualificationID: "icu", RequiredCount: 2,
		ValidFrom: date("2024-01-10"), ValidTo: datePtr("2024-01-10"),
		StartShift: shiftPtr(models.ShiftLate), EndShift: shiftPtr(models.ShiftNight),
	}}

	early, err := resolver.Resolve(date("2024-01-10"), models.ShiftEarly, rules)
	require.NoError(t, err)
	assert.Empty(t, early.Lines)

	for _, shift := range []models.ShiftCode{models.ShiftLate, models.ShiftNight} {
		res, err := resolver.Resolve(date("2024-01-10"), shift, rules)
		require.NoError(t, err)
		require.Len(t, res.Lines, 1)
		assert.Equal(t, 2, res.Lines[0].RequiredCount)
	}
}

func TestDemandResolverEndShiftClipsLastDay(t *testing.T) {
	resolver := NewDemandResolver(testQualifications(), false)
	rules := []models.DemandRule{{
		ID: "r1", QualificationID: "rn", RequiredCount: 1,
		ValidFrom: date("2024-01-08"), ValidTo: datePtr("2024-01-10"),
		EndShift: shiftPtr(models.ShiftEarly),
	}}

	last, err := resolver.Resolve(date("2024-01-10"), models.ShiftLate, rules)
	require.NoError(t, err)
	assert.Empty(t, last.Lines)

	middle, err := resolver.Resolve(date("2024-01-09"), models.ShiftNight, rules)
	require.NoError(t, err)
	assert.Len(t, middle.Lines, 1)
}

func TestDemandResolverBoundedReplacesContinuous(t *testing.T) {
	resolver := NewDemandResolver(testQualifications(), false)
	rules := []models.DemandRule{
		{ID: "c1", QualificationID: "rn", RequiredCount: 3, ValidFrom: date("2024-01-01"), Continuous: true},
		{ID: "c2", QualificationID: "aux", RequiredCount: 1, ValidFrom: date("2024-01-01"), Continuous: true},
		{ID: "b1", QualificationID: "icu", RequiredCount: 1, ValidFrom: date("2024-01-15"), ValidTo: datePtr("2024-01-16")},
	}

	inside, err := resolver.Resolve(date("2024-01-15"), models.ShiftEarly, rules)
	require.NoError(t, err)
	assert.Equal(t, []string{"icu"}, qualificationIDs(inside.Lines))

	outside, err := resolver.Resolve(date("2024-01-17"), models.ShiftEarly, rules)
	require.NoError(t, err)
	assert.Equal(t, []string{"rn", "aux"}, qualificationIDs(outside.Lines))
}

func TestDemandResolverWindowAndRestriction(t *testing.T) {
	resolver := NewDemandResolver(testQualifications(), false)
	rules := []models.DemandRule{
		{ID: "r1", QualificationID: "rn", RequiredCount: 1, ValidFrom: date("2024-02-01"), Continuous: true},
		{ID: "r2", QualificationID: "aux", RequiredCount: 1, ValidFrom: date("2024-01-01"), ValidTo: datePtr("2024-01-31"), Continuous: true},
		{ID: "r3", QualificationID: "icu", RequiredCount: 1, ValidFrom: date("2024-01-01"), Continuous: true, ShiftRestriction: shiftPtr(models.ShiftNight)},
	}

	res, err := resolver.Resolve(date("2024-01-31"), models.ShiftEarly, rules)
	require.NoError(t, err)
	assert.Equal(t, []string{"aux"}, qualificationIDs(res.Lines))

	res, err = resolver.Resolve(date("2024-02-01"), models.ShiftNight, rules)
	require.NoError(t, err)
	assert.Equal(t, []string{"icu", "rn"}, qualificationIDs(res.Lines))
}

func TestDemandResolverZeroRequirementIsKept(t *testing.T) {
	resolver := NewDemandResolver(testQualifications(), false)
	rules := []models.DemandRule{{ID: "r1", QualificationID: "rn", RequiredCount: 0, ValidFrom: date("2024-01-01"), Continuous: true}}

	res, err := resolver.Resolve(date("2024-01-03"), models.ShiftLate, rules)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 0, res.Lines[0].RequiredCount)
	assert.Equal(t, "Registered nurse", res.Lines[0].Label)
}

func TestDemandResolverIsDeterministic(t *testing.T) {
	resolver := NewDemandResolver(testQualifications(), false)
	rules := []models.DemandRule{
		{ID: "r3", QualificationID: "aux", RequiredCount: 2, ValidFrom: date("2024-01-01"), Continuous: true},
		{ID: "r1", QualificationID: "icu", RequiredCount: 1, ValidFrom: date("2024-01-01"), Continuous: true},
		{ID: "r2", QualificationID: "rn", RequiredCount: 1, ValidFrom: date("2024-01-01"), Continuous: true, WeekdayPattern: patternPtr(models.PatternMonFri)},
	}

	first, err := resolver.Resolve(date("2024-01-09"), models.ShiftLate, rules)
	require.NoError(t, err)
	second, err := resolver.Resolve(date("2024-01-09"), models.ShiftLate, rules)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"icu", "rn", "aux"}, qualificationIDs(first.Lines))
}

func TestDemandResolverStrictRejectsUnknownValues(t *testing.T) {
	resolver := NewDemandResolver(testQualifications(), false)
	rules := []models.DemandRule{
		{ID: "r1", QualificationID: "rn", RequiredCount: 1, ValidFrom: date("2024-01-01"), Continuous: true, WeekdayPattern: patternPtr("MO_SU_MAYBE")},
		{ID: "r2", QualificationID: "ghost", RequiredCount: 1, ValidFrom: date("2024-01-01"), Continuous: true},
	}

	_, err := resolver.Resolve(date("2024-01-13"), models.ShiftNight, rules)
	require.Error(t, err)
	var resErr *models.ResolutionError
	require.True(t, errors.As(err, &resErr))
	require.Len(t, resErr.Issues, 2)
	assert.Equal(t, models.IssueUnknownPattern, resErr.Issues[0].Kind)
	assert.Equal(t, models.IssueUnknownQualification, resErr.Issues[1].Kind)
}

func TestDemandResolverFailOpenReportsIssues(t *testing.T) {
	resolver := NewDemandResolver(testQualifications(), true)
	rules := []models.DemandRule{
		{ID: "r1", QualificationID: "rn", RequiredCount: 1, ValidFrom: date("2024-01-01"), Continuous: true, WeekdayPattern: patternPtr("MO_SU_MAYBE")},
		{ID: "r2", QualificationID: "icu", RequiredCount: 1, ValidFrom: date("2024-01-01"), Continuous: true, ShiftRestriction: shiftPtr("MIDDAY")},
	}

	res, err := resolver.Resolve(date("2024-01-14"), models.ShiftNight, rules)
	require.NoError(t, err)
	assert.Equal(t, []string{"icu", "rn"}, qualificationIDs(res.Lines))
	require.Len(t, res.Issues, 2)
	assert.Equal(t, models.IssueUnknownPattern, res.Issues[0].Kind)
	assert.Equal(t, models.IssueUnknownShift, res.Issues[1].Kind)
}

func TestDemandResolverRejectsUnknownSlotShift(t *testing.T) {
	resolver := NewDemandResolver(testQualifications(), true)
	_, err := resolver.Resolve(date("2024-01-14"), "MIDDAY", nil)
	assert.Error(t, err)
}
