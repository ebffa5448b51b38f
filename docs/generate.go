package docs

//go:generate swag init --dir .. --generalInfo cmd/server/main.go --output . --outputTypes go --parseInternal
