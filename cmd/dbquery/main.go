// Command dbquery, go-dbquery kütüphanesi için demo ve araç komutlarını içerir.
//
//	dbquery demo --driver sqlite
//	dbquery translate --driver postgresql "SELECT * FROM users WHERE id = ?"
//	dbquery query --env-file .env "SELECT * FROM users WHERE active = ?" 1
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
