package client

//go:generate go run ../cmd/repairgen -dir . -package github.com/repairtrack/repairdb/client
