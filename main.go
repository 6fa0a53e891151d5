package main

import "github.com/frahmantamala/payment-service/cmd"

func main() {
	cmd.Execute()
}
