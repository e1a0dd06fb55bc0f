package main

import (
	"github.com/indigo-web/httphead/cmd/httphead/cli"
)

func main() {
	cli.Execute()
}
