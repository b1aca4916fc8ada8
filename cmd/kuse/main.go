package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Execute(); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}
