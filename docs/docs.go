// Package docs is generated by swaggo/swag from the handler annotations.
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
        "/api/market": {
            "get": {
                "description": "Returns the assembled snapshot used to draw the card",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "market"
                ],
                "summary": "Market snapshot",
                "parameters": [
                    {
                        "type": "string",
                        "description": "API key when API_KEY is configured",
                        "name": "X-API-Key",
                        "in": "header"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.MarketSnapshot"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "502": {
                        "description": "Bad Gateway",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/card": {
            "get": {
                "description": "Assembles a fresh snapshot and renders the market overview card as HTML",
                "produces": [
                    "text/html"
                ],
                "tags": [
                    "card"
                ],
                "summary": "Market card (HTML)",
                "responses": {
                    "200": {
                        "description": "HTML document",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "500": {
                        "description": "Card render error",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/health": {
            "get": {
                "description": "Returns OK when the process is serving requests",
                "produces": [
                    "text/plain"
                ],
                "tags": [
                    "health"
                ],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/preview": {
            "get": {
                "description": "Redirects to the HTML card",
                "tags": [
                    "card"
                ],
                "summary": "Card preview",
                "responses": {
                    "302": {
                        "description": "Found"
                    }
                }
            }
        },
        "/preview.png": {
            "get": {
                "description": "Assembles a fresh snapshot and renders the market overview card as a PNG image",
                "produces": [
                    "image/png"
                ],
                "tags": [
                    "card"
                ],
                "summary": "Market card (PNG)",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "500": {
                        "description": "PNG render error",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "domain.Coin": {
            "type": "object",
            "properties": {
                "changePct": {
                    "type": "number"
                },
                "name": {
                    "type": "string"
                },
                "price": {
                    "type": "number"
                },
                "symbol": {
                    "type": "string"
                }
            }
        },
        "domain.MarketSnapshot": {
            "type": "object",
            "properties": {
                "aiAnalysis": {
                    "type": "string"
                },
                "altSeason": {
                    "type": "integer"
                },
                "btcDom": {
                    "type": "number"
                },
                "coins": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.Coin"
                    }
                },
                "date": {
                    "type": "string"
                },
                "ethDom": {
                    "type": "number"
                },
                "fearGreed": {
                    "type": "integer"
                },
                "marketCapChangePct": {
                    "type": "number"
                },
                "totalMarketCap": {
                    "type": "number"
                },
                "volume24h": {
                    "type": "number"
                },
                "volumeChangePct": {
                    "type": "number"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Market Card API",
	Description:      "Daily crypto market overview card: HTML, PNG and JSON renditions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
