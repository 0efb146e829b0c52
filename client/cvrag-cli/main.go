package main

import "github.com/razmarrus/cv-rag/client/cvrag-cli/cmd"

func main() {
	cmd.Execute()
}
