package main

import "watari/internal/watari"

func main() {
	watari.Main()
}
