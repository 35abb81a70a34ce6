package main

import "github.com/leafsii/blog-backend/cmd/migrate/commands"

func main() {
	commands.Execute()
}
