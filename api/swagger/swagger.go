package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LIMS Report Lifecycle API",
        "description": "Status workflow, field permissions, validation and correction ledger for lab test reports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Reports", "description": "Report lifecycle"},
        {"name": "Corrections", "description": "Field-scoped correction ledger"},
        {"name": "Health", "description": "Liveness and readiness"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness and database readiness",
                "security": [],
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Open a draft report",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Get a report",
                "parameters": [{"$ref": "#/parameters/ReportID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}/permissions": {
            "get": {
                "tags": ["Reports"],
                "summary": "Editable fields, required fields and allowed next statuses for the caller",
                "parameters": [{"$ref": "#/parameters/ReportID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}/validate": {
            "post": {
                "tags": ["Reports"],
                "summary": "Check required fields without saving",
                "parameters": [
                    {"$ref": "#/parameters/ReportID"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/ValidateReportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}/fields": {
            "patch": {
                "tags": ["Reports"],
                "summary": "Save field values",
                "description": "Applies the fields the caller may write in the current status and reports the rest.",
                "parameters": [
                    {"$ref": "#/parameters/ReportID"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateFieldsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Empty or invalid batch", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "No writable fields", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Version conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Required fields missing", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}/status": {
            "post": {
                "tags": ["Reports"],
                "summary": "Change report status",
                "parameters": [
                    {"$ref": "#/parameters/ReportID"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Transition not allowed or version conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}/history": {
            "get": {
                "tags": ["Reports"],
                "summary": "List status changes",
                "parameters": [{"$ref": "#/parameters/ReportID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}/corrections": {
            "get": {
                "tags": ["Corrections"],
                "summary": "List correction items",
                "parameters": [{"$ref": "#/parameters/ReportID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Corrections"],
                "summary": "Flag fields for correction",
                "parameters": [
                    {"$ref": "#/parameters/ReportID"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCorrectionsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid items", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}/corrections/{correctionId}/resolve": {
            "patch": {
                "tags": ["Corrections"],
                "summary": "Resolve a correction item",
                "parameters": [
                    {"$ref": "#/parameters/ReportID"},
                    {"name": "correctionId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/ResolveCorrectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Correction not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already resolved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "parameters": {
        "ReportID": {"name": "id", "in": "path", "required": true, "type": "string"}
    },
    "definitions": {
        "CreateReportRequest": {
            "type": "object",
            "required": ["kind", "formNumber", "clientCode"],
            "properties": {
                "kind": {"type": "string", "enum": ["STANDARD", "MICRO_MIX"]},
                "formNumber": {"type": "string"},
                "clientCode": {"type": "string"},
                "values": {"type": "object"}
            }
        },
        "ValidateReportRequest": {
            "type": "object",
            "properties": {
                "values": {"type": "object"},
                "phase": {"type": "string", "enum": ["PRELIM", "FINAL"]},
                "required": {"type": "array", "items": {"type": "string"}}
            }
        },
        "UpdateFieldsRequest": {
            "type": "object",
            "required": ["expectedVersion", "values"],
            "properties": {
                "expectedVersion": {"type": "integer"},
                "values": {"type": "object"},
                "draft": {"type": "boolean"}
            }
        },
        "CorrectionItemRequest": {
            "type": "object",
            "required": ["fieldKey", "message"],
            "properties": {
                "fieldKey": {"type": "string"},
                "message": {"type": "string"},
                "oldValue": {"type": "object"}
            }
        },
        "TransitionRequest": {
            "type": "object",
            "required": ["toStatus", "expectedVersion"],
            "properties": {
                "toStatus": {"type": "string"},
                "expectedVersion": {"type": "integer"},
                "reason": {"type": "string"},
                "corrections": {"type": "array", "items": {"$ref": "#/definitions/CorrectionItemRequest"}}
            }
        },
        "CreateCorrectionsRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/CorrectionItemRequest"}},
                "targetStatus": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "ResolveCorrectionRequest": {
            "type": "object",
            "properties": {
                "note": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
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
