// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List events",
                "parameters": [
                    {"type": "integer", "description": "Page (1-based)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "503": {"description": "transport_error"}}
            }
        },
        "/events/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Get an event",
                "parameters": [{"type": "string", "description": "Event ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "not_found"}}
            }
        },
        "/events/{id}/registrations": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["registrations"],
                "summary": "Register for an event",
                "parameters": [{"type": "string", "description": "Event ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "already registered"}, "201": {"description": "Created"}, "401": {"description": "unauthorized"}}
            }
        },
        "/me/registrations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["registrations"],
                "summary": "My registrations",
                "responses": {"200": {"description": "OK"}, "401": {"description": "unauthorized"}}
            }
        },
        "/auth/signup": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign up",
                "responses": {"201": {"description": "Created"}, "400": {"description": "validation_error"}, "409": {"description": "conflict"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "responses": {"200": {"description": "OK"}, "401": {"description": "unauthorized"}, "429": {"description": "rate_limited"}}
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Sign out",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/session": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Current session",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/refresh": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Refresh the session token",
                "responses": {"200": {"description": "OK"}, "401": {"description": "unauthorized"}}
            }
        },
        "/access": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["access"],
                "summary": "Check access to a page",
                "parameters": [{"type": "string", "description": "Page path", "name": "destination", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["dashboard"],
                "summary": "Member dashboard",
                "responses": {"200": {"description": "OK"}, "401": {"description": "unauthorized"}}
            }
        },
        "/admin/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Admin console",
                "responses": {"200": {"description": "OK"}, "401": {"description": "unauthorized"}, "403": {"description": "forbidden"}}
            }
        },
        "/admin/events": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Create an event",
                "responses": {"201": {"description": "Created"}, "400": {"description": "validation_error"}, "403": {"description": "forbidden"}}
            }
        },
        "/admin/events/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Update an event",
                "parameters": [
                    {"type": "string", "description": "Event ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Expected event version", "name": "If-Match", "in": "header"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "not_found"}, "409": {"description": "conflict"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Delete an event",
                "parameters": [{"type": "string", "description": "Event ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "not_found"}}
            }
        },
        "/admin/workflow": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin-workflow"],
                "summary": "Admin workflow state",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Everhack API",
	Description:      "Events, registrations and the role-gated member and admin areas.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
