// Package main prints the bcrypt hash of an owner password for
// bot.owner_password_hash.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cory-johannsen/dicebot/internal/bot"
)

func main() {
	start := time.Now()

	password := flag.String("password", "", "password to hash; read from stdin when empty")
	flag.Parse()

	pw := *password
	if pw == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("reading password from stdin: %v", err)
		}
		pw = strings.TrimRight(line, "\r\n")
	}
	if pw == "" {
		flag.Usage()
		os.Exit(1)
	}

	hash, err := bot.HashPassword(pw)
	if err != nil {
		log.Fatalf("hashing password: %v", err)
	}
	fmt.Fprintln(os.Stdout, hash)
	fmt.Fprintf(os.Stderr, "hashed in %s; set bot.owner_password_hash or DICEBOT_BOT_OWNER_PASSWORD_HASH\n", time.Since(start))
}
