package main

import "dts_backend/internal/app"

func main() {
	app.Run()
}
