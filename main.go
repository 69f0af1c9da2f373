package main

import "github.com/ValentinKolb/metasync/cmd"

func main() {
	cmd.Execute()
}
