package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Shift Coverage API",
        "description": "Weekly shift planning boards, demand coverage and assignment interval commits",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Planning", "description": "Planning sessions over a weekly board"},
        {"name": "ShiftMapping", "description": "Shift code to assignment group labels per unit"}
    ],
    "paths": {
        "/planning/sessions": {
            "post": {
                "tags": ["Planning"],
                "summary": "Open planning session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OpenSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planning/sessions/{id}": {
            "get": {
                "tags": ["Planning"],
                "summary": "Get planning session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "410": {"description": "Session expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Planning"],
                "summary": "Discard planning session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/planning/sessions/{id}/place": {
            "post": {
                "tags": ["Planning"],
                "summary": "Place employee on the board",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlaceEmployeeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planning/sessions/{id}/move": {
            "post": {
                "tags": ["Planning"],
                "summary": "Move employee between cells",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MoveEmployeeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planning/sessions/{id}/remove": {
            "post": {
                "tags": ["Planning"],
                "summary": "Remove employee from a cell",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RemoveEmployeeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planning/sessions/{id}/coverage": {
            "get": {
                "tags": ["Planning"],
                "summary": "Evaluate coverage of every date and shift",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Demand rules could not be resolved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planning/sessions/{id}/commit": {
            "post": {
                "tags": ["Planning"],
                "summary": "Commit planning session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Assignments changed since the session was opened", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Shift group mapping incomplete", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/units/{unitId}/shift-mapping": {
            "get": {
                "tags": ["ShiftMapping"],
                "summary": "Get shift group mapping",
                "parameters": [
                    {"name": "unitId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not configured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["ShiftMapping"],
                "summary": "Update shift group mapping",
                "parameters": [
                    {"name": "unitId", "in": "path", "required": true, "type": "string"},
                    {"name": "X-Actor-ID", "in": "header", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ShiftMappingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "OpenSessionRequest": {
            "type": "object",
            "required": ["unitId", "horizonStart", "weeks"],
            "properties": {
                "unitId": {"type": "string"},
                "horizonStart": {"type": "string", "format": "date"},
                "weeks": {"type": "integer", "minimum": 1}
            }
        },
        "BoardCellRef": {
            "type": "object",
            "required": ["shift"],
            "properties": {
                "weekOffset": {"type": "integer", "minimum": 0},
                "shift": {"type": "string", "enum": ["EARLY", "LATE", "NIGHT"]}
            }
        },
        "PlaceEmployeeRequest": {
            "type": "object",
            "required": ["shift", "employeeId"],
            "properties": {
                "weekOffset": {"type": "integer", "minimum": 0},
                "shift": {"type": "string", "enum": ["EARLY", "LATE", "NIGHT"]},
                "employeeId": {"type": "string"},
                "position": {"type": "integer", "minimum": 0}
            }
        },
        "MoveEmployeeRequest": {
            "type": "object",
            "required": ["from", "to", "employeeId"],
            "properties": {
                "from": {"$ref": "#/definitions/BoardCellRef"},
                "to": {"$ref": "#/definitions/BoardCellRef"},
                "employeeId": {"type": "string"},
                "position": {"type": "integer", "minimum": 0}
            }
        },
        "RemoveEmployeeRequest": {
            "type": "object",
            "required": ["shift", "employeeId"],
            "properties": {
                "weekOffset": {"type": "integer", "minimum": 0},
                "shift": {"type": "string", "enum": ["EARLY", "LATE", "NIGHT"]},
                "employeeId": {"type": "string"}
            }
        },
        "ShiftMappingRequest": {
            "type": "object",
            "required": ["earlyLabel", "lateLabel", "nightLabel"],
            "properties": {
                "earlyLabel": {"type": "string"},
                "lateLabel": {"type": "string"},
                "nightLabel": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
