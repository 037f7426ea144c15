package main

import "github.com/ValentinKolb/asadmin/cmd"

func main() {
	cmd.Execute()
}
