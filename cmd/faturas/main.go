package main

import (
	"os"

	"github.com/Appa019/Coleta-dados-faturas/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
