package main

import "github.com/DorNorimberg/Food-Tracker/cmd/foodtracker"

func main() {
	foodtracker.Execute()
}
