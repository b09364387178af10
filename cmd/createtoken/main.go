package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"cfoworx.com/portal/security"
)

func main() {
	name := flag.String("name", "reporting-service", "token subject name")
	email := flag.String("email", "", "subject email")
	expires := flag.Int64("expires", 60*60*24*30, "expiry in seconds")
	flag.Parse()

	secret := os.Getenv("PORTAL_SIGNING_SECRET")
	if secret == "" {
		log.Fatal("PORTAL_SIGNING_SECRET is required")
	}

	token, err := security.CreateIdentityToken(&security.PortalIdentity{
		Id:       0,
		UserName: *name,
		Email:    *email,
		Provider: "cli",
	}, secret, *expires)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(token)
}
