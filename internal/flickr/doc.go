// Package flickr is a client for the flickr.photos.search REST method. It
// builds percent-encoded query strings, runs the two-phase random page
// search, picks one photo from the sampled page and downloads its image.
package flickr
