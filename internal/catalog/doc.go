// Package catalog looks up books in the OpenLibrary catalog so they can be
// added to a wishlist.
//
//	client := catalog.NewClient(catalog.Options{RateInterval: time.Second})
//	entries, err := client.Search(ctx, "dune", 10)
//
// Requests are serialized through a rate limiter; OpenLibrary asks clients
// to stay near one request per second.
package catalog
