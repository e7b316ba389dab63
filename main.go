package main

import "github.com/alecrj/nutrition/cmd/mealcoach"

func main() {
	mealcoach.Execute()
}
