// Package docs holds the swagger document served under /swagger/. It mirrors
// the godoc annotations of the handlers in cmd/pos-terminal.
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
        "/basket": {
            "get": {
                "produces": ["application/json"],
                "tags": ["basket"],
                "summary": "Basket lines, selected table and display total",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/terminal.BasketView"}}
                }
            }
        },
        "/basket/lines": {
            "post": {
                "description": "Unknown or unavailable items and quantities below 1 are ignored (422).",
                "consumes": ["application/json"],
                "tags": ["basket"],
                "summary": "Add a menu item to the basket",
                "parameters": [
                    {"description": "line", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.addLineRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/basket/lines/{index}": {
            "delete": {
                "tags": ["basket"],
                "summary": "Remove a basket line by position",
                "parameters": [
                    {"type": "integer", "description": "line index", "name": "index", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/basket/submit": {
            "post": {
                "produces": ["application/json"],
                "tags": ["basket"],
                "summary": "Submit the basket as an order for the selected table",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/order.Order"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/basket/table": {
            "put": {
                "consumes": ["application/json"],
                "tags": ["basket"],
                "summary": "Select the table the basket is for",
                "parameters": [
                    {"description": "table", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.selectTableRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "tags": ["basket"],
                "summary": "Clear the table selection",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/menu": {
            "get": {
                "produces": ["application/json"],
                "tags": ["menu"],
                "summary": "Cached menu",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/menu.MenuItem"}}}
                }
            }
        },
        "/menu/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["menu"],
                "summary": "Reload the menu from the order service",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/menu.MenuItem"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/notifications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["terminal"],
                "summary": "Recent user notifications, newest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/terminal.Message"}}}
                }
            }
        },
        "/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Cached orders",
                "parameters": [
                    {"type": "string", "description": "received (default) or newest", "name": "sort", "in": "query"},
                    {"type": "string", "description": "opening, closed or canceled", "name": "status", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/terminal.OrderList"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/orders/by-date/{date}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Replace the cached list with one day's orders",
                "parameters": [
                    {"type": "string", "description": "YYYY-MM-DD", "name": "date", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/orders/more": {
            "post": {
                "description": "Answers {\"more\": false} without calling the service once the last page came back short.",
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Append the next page of orders",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/orders/reload": {
            "post": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Drop the cached list and load the first page",
                "parameters": [
                    {"type": "integer", "description": "page size, 1 to 100 (default: configured page size)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Fetch one order with its items and expand it",
                "parameters": [
                    {"type": "integer", "description": "order id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/terminal.OrderDetail"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/orders/{id}/changes": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Reconciliations applied to an order, newest first",
                "parameters": [
                    {"type": "integer", "description": "order id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "1 to 100, default 20", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "0 or more", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/order.Change"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/orders/{id}/extend": {
            "put": {
                "consumes": ["application/json"],
                "tags": ["orders"],
                "summary": "Add items to an open order",
                "parameters": [
                    {"type": "integer", "description": "order id", "name": "id", "in": "path", "required": true},
                    {"description": "new items", "name": "body", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/order.CreateOrderItem"}}}
                ],
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/orders/{id}/paid": {
            "put": {
                "consumes": ["application/json"],
                "tags": ["orders"],
                "summary": "Set or clear an order's paid flag",
                "parameters": [
                    {"type": "integer", "description": "order id", "name": "id", "in": "path", "required": true},
                    {"description": "paid flag", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.paidRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/orders/{id}/status": {
            "put": {
                "description": "The cached order changes once the update is reconciled.",
                "consumes": ["application/json"],
                "tags": ["orders"],
                "summary": "Change an order's status",
                "parameters": [
                    {"type": "integer", "description": "order id", "name": "id", "in": "path", "required": true},
                    {"description": "status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.statusRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/orders/{id}/toggle": {
            "post": {
                "tags": ["orders"],
                "summary": "Expand or collapse an order in the list",
                "parameters": [
                    {"type": "integer", "description": "order id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "boolean"}}}
                }
            }
        },
        "/tables": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tables"],
                "summary": "Cached tables and the current selection",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/terminal.TableList"}}
                }
            }
        },
        "/tables/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["tables"],
                "summary": "Reload tables from the order service",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/menu.Table"}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "basket.Line": {
            "type": "object",
            "properties": {
                "image": {"type": "string"},
                "item_id": {"type": "integer"},
                "name": {"type": "string"},
                "note": {"type": "string"},
                "price": {"type": "number"},
                "quantity": {"type": "integer"}
            }
        },
        "main.addLineRequest": {
            "type": "object",
            "required": ["item_id"],
            "properties": {
                "item_id": {"type": "integer", "example": 7},
                "note": {"type": "string", "example": "no ice"},
                "quantity": {"type": "integer", "example": 2}
            }
        },
        "main.paidRequest": {
            "type": "object",
            "required": ["is_paid"],
            "properties": {
                "is_paid": {"type": "boolean"}
            }
        },
        "main.selectTableRequest": {
            "type": "object",
            "required": ["table_id"],
            "properties": {
                "table_id": {"type": "integer", "example": 3}
            }
        },
        "main.statusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "example": "closed"}
            }
        },
        "menu.MenuItem": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "image": {"type": "string"},
                "is_available": {"type": "boolean"},
                "name": {"type": "string"},
                "price": {"type": "number"}
            }
        },
        "menu.Table": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "is_available": {"type": "boolean"}
            }
        },
        "order.Change": {
            "type": "object",
            "properties": {
                "applied_at": {"type": "string"},
                "id": {"type": "integer"},
                "item_id": {"type": "integer"},
                "kind": {"type": "string"},
                "order_id": {"type": "integer"},
                "payload": {"type": "object"}
            }
        },
        "order.CreateOrderItem": {
            "type": "object",
            "properties": {
                "item_id": {"type": "integer", "example": 7},
                "note": {"type": "string", "example": "no ice"},
                "quantity": {"type": "integer", "example": 2}
            }
        },
        "order.Item": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "item_id": {"type": "integer"},
                "note": {"type": "string"},
                "order_id": {"type": "integer"},
                "quantity": {"type": "integer"},
                "status": {"type": "string", "enum": ["pending", "received", "completed", "canceled"]}
            }
        },
        "order.Order": {
            "type": "object",
            "properties": {
                "closed_at": {"type": "string"},
                "created_at": {"type": "string"},
                "id": {"type": "integer"},
                "is_paid": {"type": "boolean"},
                "order_items": {"type": "array", "items": {"$ref": "#/definitions/order.Item"}},
                "server_id": {"type": "integer"},
                "status": {"type": "string", "enum": ["opening", "closed", "canceled"]},
                "table_id": {"type": "integer"},
                "total_amount": {"type": "number"}
            }
        },
        "terminal.BasketView": {
            "type": "object",
            "properties": {
                "lines": {"type": "array", "items": {"$ref": "#/definitions/basket.Line"}},
                "table_id": {"type": "integer"},
                "total": {"type": "number"}
            }
        },
        "terminal.Message": {
            "type": "object",
            "properties": {
                "at": {"type": "string"},
                "level": {"type": "string", "enum": ["success", "error"]},
                "text": {"type": "string"}
            }
        },
        "terminal.OrderDetail": {
            "type": "object",
            "properties": {
                "closed_at": {"type": "string"},
                "created_at": {"type": "string"},
                "display_total": {"type": "number"},
                "id": {"type": "integer"},
                "is_paid": {"type": "boolean"},
                "lines": {"type": "array", "items": {"type": "object"}},
                "order_items": {"type": "array", "items": {"$ref": "#/definitions/order.Item"}},
                "server_id": {"type": "integer"},
                "status": {"type": "string"},
                "table_id": {"type": "integer"},
                "total_amount": {"type": "number"}
            }
        },
        "terminal.OrderList": {
            "type": "object",
            "properties": {
                "expanded": {"type": "array", "items": {"type": "integer"}},
                "more": {"type": "boolean"},
                "orders": {"type": "array", "items": {"$ref": "#/definitions/order.Order"}}
            }
        },
        "terminal.TableList": {
            "type": "object",
            "properties": {
                "selected": {"type": "integer"},
                "tables": {"type": "array", "items": {"$ref": "#/definitions/menu.Table"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ordenes-pos terminal API",
	Description:      "Local API of a restaurant POS terminal: menu, basket, order list.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
