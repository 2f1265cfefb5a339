// grafo-ingest runs a YAML-described ingestion pipeline over text files:
// it splits and embeds each input and upserts the resulting chunks into the
// configured vector store.
package main

import (
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	Execute()
}
