package main

import "paylink_backend/internal/app"

func main() {
	app.Run()
}
