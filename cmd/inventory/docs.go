package main

//go:generate swag init -g docs.go -d ./,../../internal -o ../../docs

// @title Smart Inventory API
// @version 1.0
// @description Inventory, sales, reorder and prediction endpoints of the smart inventory service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT

// @host localhost:8082
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Inventory
// @tag.description Item stock management endpoints

// @tag.name Sales
// @tag.description Sales ledger endpoints

// @tag.name Stock
// @tag.description Low stock policy endpoints

// @tag.name Reorders
// @tag.description Supplier reorder endpoints

// @tag.name Predictions
// @tag.description Restock prediction endpoints

// @tag.name Reports
// @tag.description Printable report endpoints

// @tag.name Auth
// @tag.description Account registration and login

// @tag.name Health
// @tag.description Health check endpoints
