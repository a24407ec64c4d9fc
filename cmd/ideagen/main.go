// Command ideagen generates small business ideas with the Gemini API.
package main

import "github.com/diogo/ideagen/internal/commands"

func main() {
	commands.Execute()
}
