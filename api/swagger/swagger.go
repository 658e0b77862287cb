package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {"title": "Blood Donor Registry API", "description": "Donor registry with staged CSV imports, exports and emergency broadcasts.", "version": "1.0.0"},
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {"BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}},
    "tags": [
        {"name": "Authentication"},
        {"name": "Donors"},
        {"name": "Self Service"},
        {"name": "Registry"},
        {"name": "Imports"},
        {"name": "Exports"},
        {"name": "Alerts"},
        {"name": "Audit"},
        {"name": "Admin Users"}
    ],
    "paths": {
        "/auth/login": {
            "post": {"tags": ["Authentication"], "summary": "Authenticate staff or donor", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}]}
        },
        "/auth/me": {
            "get": {"tags": ["Authentication"], "summary": "Current principal", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}
        },
        "/auth/change-password": {
            "post": {"tags": ["Authentication"], "summary": "Change staff password", "responses": {"204": {"description": "No Content"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}], "security": [{"BearerAuth": []}]}
        },
        "/donors": {
            "get": {"tags": ["Donors"], "summary": "Find donors", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "bloodGroup", "in": "query", "type": "string", "required": false, "description": ""}, {"name": "location", "in": "query", "type": "string", "required": false, "description": ""}, {"name": "page", "in": "query", "type": "integer", "required": false, "description": ""}, {"name": "pageSize", "in": "query", "type": "integer", "required": false, "description": ""}]},
            "post": {"tags": ["Donors"], "summary": "Register as a donor", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterDonorRequest"}}]}
        },
        "/alerts": {
            "get": {"tags": ["Alerts"], "summary": "Active alerts", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/me": {
            "get": {"tags": ["Self Service"], "summary": "Own donor profile", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]},
            "patch": {"tags": ["Self Service"], "summary": "Edit own profile", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "If-Match", "in": "header", "type": "string", "required": false, "description": "Expected record version"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DonorPatch"}}], "security": [{"BearerAuth": []}]}
        },
        "/me/availability": {
            "post": {"tags": ["Self Service"], "summary": "Toggle own availability", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}
        },
        "/me/recovery": {
            "get": {"tags": ["Self Service"], "summary": "Donation recovery status", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}
        },
        "/me/password": {
            "post": {"tags": ["Self Service"], "summary": "Change own password", "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}], "security": [{"BearerAuth": []}]}
        },
        "/me/sos": {
            "post": {"tags": ["Self Service"], "summary": "Donor SOS", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BroadcastRequest"}}], "security": [{"BearerAuth": []}]}
        },
        "/admin/donors": {
            "get": {"tags": ["Registry"], "summary": "List donors", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "search", "in": "query", "type": "string", "required": false, "description": ""}, {"name": "status", "in": "query", "type": "string", "required": false, "description": ""}, {"name": "bloodGroup", "in": "query", "type": "string", "required": false, "description": ""}, {"name": "sortBy", "in": "query", "type": "string", "required": false, "description": ""}, {"name": "sortOrder", "in": "query", "type": "string", "required": false, "description": ""}, {"name": "page", "in": "query", "type": "integer", "required": false, "description": ""}, {"name": "pageSize", "in": "query", "type": "integer", "required": false, "description": ""}], "security": [{"BearerAuth": []}]}
        },
        "/admin/donors/bulk": {
            "post": {"tags": ["Registry"], "summary": "Bulk action", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkActionRequest"}}], "security": [{"BearerAuth": []}]}
        },
        "/admin/donors/global": {
            "post": {"tags": ["Registry"], "summary": "Global command", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GlobalCommandRequest"}}], "security": [{"BearerAuth": []}]}
        },
        "/admin/donors/{id}": {
            "get": {"tags": ["Donors"], "summary": "Get donor", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}]},
            "patch": {"tags": ["Donors"], "summary": "Edit donor", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "If-Match", "in": "header", "type": "string", "required": false, "description": "Expected record version"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DonorPatch"}}], "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["Donors"], "summary": "Delete donor", "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}]}
        },
        "/admin/donors/{id}/verify": {
            "post": {"tags": ["Donors"], "summary": "Toggle verification", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}]}
        },
        "/admin/donors/{id}/block": {
            "post": {"tags": ["Donors"], "summary": "Toggle blocked flag", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}]}
        },
        "/admin/donors/{id}/recovery": {
            "get": {"tags": ["Donors"], "summary": "Donation recovery status", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}]}
        },
        "/admin/imports": {
            "post": {"tags": ["Imports"], "summary": "Stage an import file", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "413": {"description": "Payload Too Large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "file", "in": "formData", "type": "file", "required": true}], "security": [{"BearerAuth": []}]}
        },
        "/admin/imports/{id}": {
            "get": {"tags": ["Imports"], "summary": "Get staged batch", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["Imports"], "summary": "Discard staged batch", "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}]}
        },
        "/admin/imports/{id}/rows/{index}": {
            "delete": {"tags": ["Imports"], "summary": "Drop a staged row", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "index", "in": "path", "type": "integer", "required": true}], "security": [{"BearerAuth": []}]}
        },
        "/admin/imports/{id}/commit": {
            "post": {"tags": ["Imports"], "summary": "Commit staged batch", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/ImportCommitRequest"}}], "security": [{"BearerAuth": []}]}
        },
        "/admin/exports/registry": {
            "get": {"tags": ["Exports"], "summary": "Export registry", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "format", "in": "query", "type": "string", "required": false, "description": "csv, xlsx or pdf"}, {"name": "ids", "in": "query", "type": "string", "required": false, "description": "Comma separated donor ids"}], "security": [{"BearerAuth": []}], "produces": ["application/octet-stream"]}
        },
        "/admin/exports/backup": {
            "get": {"tags": ["Exports"], "summary": "JSON backup", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "produces": ["application/json"]}
        },
        "/admin/exports/donors/{id}": {
            "get": {"tags": ["Exports"], "summary": "Donor dossier", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "format", "in": "query", "type": "string", "required": false, "description": "json or pdf"}], "security": [{"BearerAuth": []}], "produces": ["application/octet-stream"]}
        },
        "/admin/exports/template": {
            "get": {"tags": ["Exports"], "summary": "Import template", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "format", "in": "query", "type": "string", "required": false, "description": "csv or xlsx"}], "security": [{"BearerAuth": []}], "produces": ["application/octet-stream"]}
        },
        "/admin/health": {
            "get": {"tags": ["Registry"], "summary": "Data health report", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}
        },
        "/admin/stats": {
            "get": {"tags": ["Registry"], "summary": "Registry statistics", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}
        },
        "/admin/metrics": {
            "get": {"tags": ["Registry"], "summary": "Process metrics", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}
        },
        "/admin/alerts": {
            "get": {"tags": ["Alerts"], "summary": "All alerts", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]},
            "post": {"tags": ["Alerts"], "summary": "Dispatch alert", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BroadcastRequest"}}], "security": [{"BearerAuth": []}]}
        },
        "/admin/alerts/templates": {
            "get": {"tags": ["Alerts"], "summary": "Broadcast templates", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}
        },
        "/admin/alerts/reach": {
            "get": {"tags": ["Alerts"], "summary": "Broadcast reach preview", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "bloodGroup", "in": "query", "type": "string", "required": true, "description": ""}], "security": [{"BearerAuth": []}]}
        },
        "/admin/alerts/{id}": {
            "delete": {"tags": ["Alerts"], "summary": "Terminate alert", "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}]}
        },
        "/admin/audit-logs": {
            "get": {"tags": ["Audit"], "summary": "Audit trail", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "limit", "in": "query", "type": "integer", "required": false, "description": ""}], "security": [{"BearerAuth": []}]}
        },
        "/admin/users": {
            "get": {"tags": ["Admin Users"], "summary": "List staff accounts", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]},
            "post": {"tags": ["Admin Users"], "summary": "Create staff account", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAdminRequest"}}], "security": [{"BearerAuth": []}]}
        },
        "/admin/users/{id}": {
            "get": {"tags": ["Admin Users"], "summary": "Get staff account", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["Admin Users"], "summary": "Revoke staff account", "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}]}
        }
    },
    "definitions": {
        "LoginRequest": {"type": "object", "properties": {"identifier": {"type": "string"}, "password": {"type": "string"}}},
        "ChangePasswordRequest": {"type": "object", "properties": {"oldPassword": {"type": "string"}, "newPassword": {"type": "string"}}},
        "RegisterDonorRequest": {"type": "object", "properties": {"name": {"type": "string"}, "bloodGroup": {"type": "string"}, "age": {"type": "integer"}, "gender": {"type": "string"}, "address": {"type": "string"}, "phone": {"type": "string"}, "occupation": {"type": "string"}, "designation": {"type": "string"}, "department": {"type": "string"}, "lastDonationDate": {"type": "string"}, "userType": {"type": "string"}}},
        "DonorPatch": {"type": "object", "properties": {"name": {"type": "string"}, "bloodGroup": {"type": "string"}, "age": {"type": "integer"}, "gender": {"type": "string"}, "address": {"type": "string"}, "phone": {"type": "string"}, "occupation": {"type": "string"}, "designation": {"type": "string"}, "department": {"type": "string"}, "lastDonationDate": {"type": "string"}, "availability": {"type": "string"}, "verificationStatus": {"type": "string"}, "isBlocked": {"type": "boolean"}, "reports": {"type": "integer"}, "internalNotes": {"type": "string"}, "userType": {"type": "string"}, "password": {"type": "string"}, "version": {"type": "integer"}}},
        "BulkActionRequest": {"type": "object", "properties": {"action": {"type": "string", "enum": ["VERIFY", "BLOCK", "UNBLOCK", "DELETE", "EXPORT"]}, "ids": {"type": "array", "items": {"type": "string"}}}},
        "GlobalCommandRequest": {"type": "object", "properties": {"command": {"type": "string", "enum": ["VERIFY_ALL", "RESET_AVAILABILITY"]}}},
        "ImportCommitRequest": {"type": "object", "properties": {"mode": {"type": "string", "enum": ["merge", "mirror"]}}},
        "BroadcastRequest": {"type": "object", "properties": {"severity": {"type": "string"}, "bloodGroup": {"type": "string"}, "hospitalName": {"type": "string"}, "message": {"type": "string"}, "link": {"type": "string"}, "templateId": {"type": "string"}}},
        "CreateAdminRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "role": {"type": "string"}}},
        "Pagination": {"type": "object", "properties": {"page": {"type": "integer"}, "pageSize": {"type": "integer"}, "totalCount": {"type": "integer"}, "totalPages": {"type": "integer"}}},
        "APIError": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}, "status": {"type": "integer"}}},
        "ResponseEnvelope": {"type": "object", "properties": {"data": {"type": "object"}, "error": {"$ref": "#/definitions/APIError"}, "pagination": {"$ref": "#/definitions/Pagination"}, "meta": {"type": "object"}}}
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
