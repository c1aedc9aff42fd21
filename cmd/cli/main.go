package main

import "scrape-client-go/pkg/cli"

func main() {
	cli.Execute()
}
