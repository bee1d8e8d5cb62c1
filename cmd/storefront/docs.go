package main

// @title Feirinha Storefront API
// @version 1.0
// @description Storefront API of the Feirinha UESB marketplace: session cart, login, catalog, checkout and vendor stalls
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @host localhost:8084
// @BasePath /

// @securityDefinitions.apikey SessionToken
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

// @tag.name Cart
// @tag.description Session cart endpoints

// @tag.name Session
// @tag.description Login, logout and registration endpoints

// @tag.name Products
// @tag.description Catalog endpoints

// @tag.name Checkout
// @tag.description Checkout and order history endpoints

// @tag.name Profile
// @tag.description Profile and stall management endpoints

// @tag.name Health
// @tag.description Health check endpoints

// @tag.name Swagger
// @tag.description Swagger documentation endpoints
