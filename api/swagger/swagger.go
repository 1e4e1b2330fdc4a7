package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Procurement API",
        "description": "Procurement request lifecycle service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and session management"},
        {"name": "Suppliers", "description": "Supplier registration and profiles"},
        {"name": "Logists", "description": "Logist registration and profiles"},
        {"name": "Products", "description": "Supplier product catalogues"},
        {"name": "Requests", "description": "Procurement request lifecycle"},
        {"name": "Analytics", "description": "Monthly procurement analytics"},
        {"name": "Reports", "description": "Asynchronous monthly reports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Invalid refresh token"}
                }
            }
        },
        "/suppliers": {
            "post": {
                "tags": ["Suppliers"],
                "summary": "Register supplier",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Email already exists"}
                }
            },
            "get": {
                "tags": ["Suppliers"],
                "summary": "List suppliers",
                "responses": {
                    "200": {"description": "Supplier list"}
                }
            }
        },
        "/logists": {
            "post": {
                "tags": ["Logists"],
                "summary": "Register logist",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Email already exists"}
                }
            }
        },
        "/products": {
            "post": {
                "tags": ["Products"],
                "summary": "Add product to own catalogue",
                "responses": {
                    "201": {"description": "Created"}
                }
            },
            "get": {
                "tags": ["Products"],
                "summary": "List products",
                "parameters": [
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Product list"}
                }
            }
        },
        "/requests": {
            "post": {
                "tags": ["Requests"],
                "summary": "Create procurement request",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failure"},
                    "404": {"description": "Product or logist not found"}
                }
            },
            "get": {
                "tags": ["Requests"],
                "summary": "List requests visible to the actor",
                "responses": {
                    "200": {"description": "Request list"}
                }
            }
        },
        "/requests/{id}/reply": {
            "post": {
                "tags": ["Requests"],
                "summary": "Supplier confirm/reject",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "New status"},
                    "409": {"description": "Not actionable in current status"}
                }
            }
        },
        "/requests/{id}/status": {
            "put": {
                "tags": ["Requests"],
                "summary": "Administrative status change",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Acknowledged"},
                    "409": {"description": "Invalid status change"}
                }
            }
        },
        "/requests/{id}/confirm": {
            "post": {
                "tags": ["Requests"],
                "summary": "Logist delivery confirmation",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Acknowledged"},
                    "409": {"description": "Not awaiting payment"}
                }
            }
        },
        "/analytics/overview": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Monthly procurement overview",
                "parameters": [
                    {"name": "month", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Overview"}
                }
            }
        },
        "/reports/monthly": {
            "post": {
                "tags": ["Reports"],
                "summary": "Enqueue monthly report",
                "responses": {
                    "202": {"description": "Job accepted"}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download rendered report",
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
