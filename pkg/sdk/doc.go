// Package prodsearch embeds the product semantic search engine in a Go
// program: the same catalog loader, query expansion, cosine ranking,
// attribute filter and knowledge graph match the HTTP server uses, without
// the server.
//
//	client, _ := prodsearch.New(
//	    prodsearch.WithCatalog("data/products.csv", "data/product_embeddings.parquet"),
//	    prodsearch.WithOpenAI(prodsearch.OpenAIConfig{APIKey: key, Model: "text-embedding-3-small"}),
//	)
//	resp, _ := client.Search(ctx, "red running shoes", "red", "black")
//	for _, r := range resp.Results {
//	    fmt.Printf("%s (%.4f)\n", r.Name, r.Score)
//	}
//
// The catalog embeddings must come from the same model the client embeds
// queries with; cmd/embedgen produces them.
package prodsearch
