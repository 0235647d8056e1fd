// Package history records finished download runs in a SQLite database.
//
// Each run stores its totals and one record per chapter, including the
// error text of failed chapters and the artifact path of converted ones.
// History is informational only; downloads never read it back.
//
//	store, err := history.Open(settings.HistoryPath)
//	defer store.Close()
//
//	run := history.NewRun(mangaURL, summary, format, started, time.Now())
//	err = store.RecordRun(ctx, run)
package history
