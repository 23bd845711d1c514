package main

import "github.com/drdon1234/weibo-parser/cmd"

func main() {
	cmd.Execute()
}
