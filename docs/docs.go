package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness probe",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Create an account and start a session",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "account", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Registration successful", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "400": {"description": "Missing fields or duplicate account", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Log in with username or email",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "credentials", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Login successful", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "End the current session",
                "responses": {
                    "200": {"description": "Logout successful", "schema": {"$ref": "#/definitions/MessageResponse"}}
                }
            }
        },
        "/api/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user",
                "security": [{"SessionCookie": []}],
                "responses": {
                    "200": {"description": "Signed-in user", "schema": {"$ref": "#/definitions/User"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/profile": {
            "get": {
                "tags": ["Profile"],
                "summary": "Get profile",
                "security": [{"SessionCookie": []}],
                "responses": {"200": {"description": "Profile", "schema": {"$ref": "#/definitions/User"}}}
            },
            "put": {
                "tags": ["Profile"],
                "summary": "Update display name, email or profile image",
                "security": [{"SessionCookie": []}],
                "responses": {
                    "200": {"description": "Updated profile", "schema": {"$ref": "#/definitions/User"}},
                    "400": {"description": "Email already in use", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/profile/password": {
            "put": {
                "tags": ["Profile"],
                "summary": "Change password",
                "security": [{"SessionCookie": []}],
                "responses": {
                    "200": {"description": "Password changed", "schema": {"$ref": "#/definitions/MessageResponse"}},
                    "401": {"description": "Current password is incorrect", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/tasks": {
            "get": {
                "tags": ["Tasks"],
                "summary": "List tasks grouped by status",
                "security": [{"SessionCookie": []}],
                "responses": {"200": {"description": "Board", "schema": {"$ref": "#/definitions/TaskGroups"}}}
            },
            "post": {
                "tags": ["Tasks"],
                "summary": "Create a task at the tail of its column",
                "security": [{"SessionCookie": []}],
                "responses": {
                    "201": {"description": "Created task", "schema": {"$ref": "#/definitions/Task"}},
                    "400": {"description": "Title is required", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/tasks/{id}": {
            "put": {
                "tags": ["Tasks"],
                "summary": "Update task fields",
                "security": [{"SessionCookie": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "Updated task", "schema": {"$ref": "#/definitions/Task"}},
                    "404": {"description": "Task not found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["Tasks"],
                "summary": "Delete a task",
                "security": [{"SessionCookie": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "Task deleted successfully", "schema": {"$ref": "#/definitions/MessageResponse"}}}
            }
        },
        "/api/tasks/reorder/{id}": {
            "put": {
                "tags": ["Tasks"],
                "summary": "Move a task to a status column and position",
                "security": [{"SessionCookie": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "Task reordered successfully", "schema": {"$ref": "#/definitions/MessageResponse"}}}
            }
        },
        "/api/notes": {
            "get": {
                "tags": ["Notes"],
                "summary": "List notes, pinned first",
                "security": [{"SessionCookie": []}],
                "responses": {"200": {"description": "Notes", "schema": {"type": "array", "items": {"$ref": "#/definitions/Note"}}}}
            },
            "post": {
                "tags": ["Notes"],
                "summary": "Create a note",
                "security": [{"SessionCookie": []}],
                "responses": {"201": {"description": "Created note", "schema": {"$ref": "#/definitions/Note"}}}
            }
        },
        "/api/notes/{id}": {
            "get": {
                "tags": ["Notes"],
                "summary": "Get a note",
                "security": [{"SessionCookie": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "Note", "schema": {"$ref": "#/definitions/Note"}}}
            },
            "put": {
                "tags": ["Notes"],
                "summary": "Update a note",
                "security": [{"SessionCookie": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "Updated note", "schema": {"$ref": "#/definitions/Note"}}}
            },
            "delete": {
                "tags": ["Notes"],
                "summary": "Delete a note",
                "security": [{"SessionCookie": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "Note deleted successfully", "schema": {"$ref": "#/definitions/MessageResponse"}}}
            }
        },
        "/api/notes/{id}/pin": {
            "patch": {
                "tags": ["Notes"],
                "summary": "Toggle the pinned flag",
                "security": [{"SessionCookie": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "New pin state", "schema": {"$ref": "#/definitions/PinResponse"}}}
            }
        },
        "/api/calendar": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List events overlapping a month or contained in a range",
                "security": [{"SessionCookie": []}],
                "parameters": [
                    {"in": "query", "name": "month", "type": "integer"},
                    {"in": "query", "name": "year", "type": "integer"},
                    {"in": "query", "name": "start", "type": "string", "format": "date-time"},
                    {"in": "query", "name": "end", "type": "string", "format": "date-time"}
                ],
                "responses": {"200": {"description": "Events", "schema": {"type": "array", "items": {"$ref": "#/definitions/CalendarEvent"}}}}
            },
            "post": {
                "tags": ["Calendar"],
                "summary": "Create an event",
                "security": [{"SessionCookie": []}],
                "responses": {
                    "201": {"description": "Created event", "schema": {"$ref": "#/definitions/CalendarEvent"}},
                    "400": {"description": "End time must be after start time", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/calendar/{id}": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Get an event",
                "security": [{"SessionCookie": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "Event", "schema": {"$ref": "#/definitions/CalendarEvent"}}}
            },
            "put": {
                "tags": ["Calendar"],
                "summary": "Update an event",
                "security": [{"SessionCookie": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "Updated event", "schema": {"$ref": "#/definitions/CalendarEvent"}}}
            },
            "delete": {
                "tags": ["Calendar"],
                "summary": "Delete an event",
                "security": [{"SessionCookie": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "Event deleted successfully", "schema": {"$ref": "#/definitions/MessageResponse"}}}
            }
        }
    },
    "definitions": {
        "ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "MessageResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "PinResponse": {"type": "object", "properties": {"isPinned": {"type": "boolean"}}},
        "RegisterRequest": {
            "type": "object",
            "required": ["username", "email", "password"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "displayName": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string", "description": "Username or email"},
                "password": {"type": "string"}
            }
        },
        "AuthResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "user": {"$ref": "#/definitions/User"}
            }
        },
        "User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "displayName": {"type": "string"},
                "profileImage": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "Task": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["todo", "in_progress", "done"]},
                "priority": {"type": "string", "enum": ["low", "medium", "high"]},
                "due_date": {"type": "string", "format": "date-time"},
                "position": {"type": "integer"}
            }
        },
        "TaskGroups": {
            "type": "object",
            "properties": {
                "todo": {"type": "array", "items": {"$ref": "#/definitions/Task"}},
                "in_progress": {"type": "array", "items": {"$ref": "#/definitions/Task"}},
                "done": {"type": "array", "items": {"$ref": "#/definitions/Task"}}
            }
        },
        "Note": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "content": {"type": "string"},
                "color": {"type": "string"},
                "is_pinned": {"type": "boolean"}
            }
        },
        "CalendarEvent": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "start_time": {"type": "string", "format": "date-time"},
                "end_time": {"type": "string", "format": "date-time"},
                "color": {"type": "string"},
                "all_day": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "SessionCookie": {
            "type": "apiKey",
            "name": "arrange_my_list_session",
            "in": "cookie",
            "description": "HttpOnly session cookie set by login and register"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Arrange My List API",
	Description:      "Kanban board, calendar and notes for a single signed-in user",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
