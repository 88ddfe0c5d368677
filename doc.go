// Package notegraph builds and queries entity knowledge graphs over
// personal note corpora.
//
// Indexing runs a three tier extraction cascade over every note chunk
// (a local span tagger, a curated entity dictionary, and an LLM
// fallback for sparse chunks), aggregates the results into a
// co-occurrence graph, and builds a hierarchical summary tree whose
// leaves are the original chunks. Everything is persisted as one
// immutable snapshot that the store package serves read-only queries
// against.
//
// # Basic Usage
//
// Build an indexer from its tiers and run a corpus:
//
//	tagger, err := tagger.NewGlinerTagger(cfg.Tagger.Model, cfg.Tagger.ScoreThreshold)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer tagger.Close()
//
//	dict, err := extract.LoadDictionary(cfg.Extraction.DictionaryPath)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cascade := extract.New(extract.NewTaggerTier(tagger, cfg.Tagger.LabelThreshold, logger), dict,
//		extract.WithGenerative(extract.NewGenerative(llmClient, logger)))
//	builder := tree.NewBuilder(tree.NewLLMSummarizer(llmClient), cfg.Tree.Workers, logger)
//
//	indexer := notegraph.NewIndexer(cascade, builder, cfg.Tree.MergeNum)
//	snap, err := indexer.Index(ctx, chunks, cfg.Snapshot.Dir)
//
// # Querying
//
// Open a store over the snapshot directory and query it:
//
//	st, err := store.Open(cfg.Snapshot.Dir, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	results := st.SearchEntities("biznes validator", 10)
//	ctx, err := st.EntityContext("Trello")
//	sub, err := st.QuerySubgraph([]string{"Trello", "n8n"}, 3, 25)
package notegraph
