package main

import "dbt-metabase/cmd"

func main() {
	cmd.Execute()
}
