/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/daffahilmyf/go-helpdesk-audit/cmd"

func main() {
	cmd.Execute()
}
