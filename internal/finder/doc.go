// Package finder contains the search flow of the application. It validates
// user input, runs the Flickr search, downloads the picked image and reports
// exactly one outcome to a display sink. Searches can run in the foreground
// or on a background goroutine, where a new search cancels the previous one.
package finder
