// Package docs registers the OpenAPI document served at /api/swagger.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "Logout", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/projects": {
            "get": {"tags": ["projects"], "summary": "List projects", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["projects"], "summary": "Create a project", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/projects/{id}": {
            "get": {"tags": ["projects"], "summary": "Get a project", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["projects"], "summary": "Update a project", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["projects"], "summary": "Delete a project", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/projects/{id}/comments": {
            "get": {"tags": ["engagement"], "summary": "List comments", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["engagement"], "summary": "Comment on a project", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/projects/{id}/upvote": {
            "get": {"tags": ["engagement"], "summary": "Whether the caller upvoted a project", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["engagement"], "summary": "Upvote a project", "description": "Upvoting twice is a no-op. Anonymous callers get 401, not 403.", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Not authenticated"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["engagement"], "summary": "Remove an upvote", "description": "Removing a missing upvote is a no-op. Anonymous callers get 401, not 403.", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Not authenticated"}, "404": {"description": "Not Found"}}}
        },
        "/contact": {"post": {"tags": ["contact"], "summary": "Contact a developer", "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/contact-requests": {"get": {"tags": ["contact"], "summary": "Contact request inbox", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contact-requests/{id}/read": {"put": {"tags": ["contact"], "summary": "Mark a contact request read", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/profile": {
            "get": {"tags": ["profile"], "summary": "Current profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["profile"], "summary": "Update the current profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/profile/skills": {
            "get": {"tags": ["profile"], "summary": "List own skills", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["profile"], "summary": "Add a skill", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/profile/skills/{id}": {"delete": {"tags": ["profile"], "summary": "Remove a skill", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/developers": {"get": {"tags": ["developers"], "summary": "Developer directory", "responses": {"200": {"description": "OK"}}}},
        "/developers/{id}": {"get": {"tags": ["developers"], "summary": "Developer profile", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/ws/ticket": {"post": {"tags": ["realtime"], "summary": "Issue a WebSocket ticket", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "DevHub API",
	Description:      "Developer portfolio hub: projects, upvotes, comments and contact requests.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
