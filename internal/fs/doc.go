// Package fs abstracts the file operations of the local blob store so that
// tests can inject I/O failures.
//
// Production code uses [Default], which forwards to the os package. [FaultyFS]
// wraps another FileSystem and fails writes, syncs, closes or renames of files
// whose path contains a configured pattern:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("LATEST", fs.Fault{FailOnRename: true})
//	store := blobstore.NewLocalStoreWithFS(dir, ffs)
package fs
