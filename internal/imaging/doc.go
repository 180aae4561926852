// Package imaging canonicalizes uploaded images into the encodings the
// synthesis backend accepts. JPEG and PNG uploads pass through untouched;
// WebP and GIF uploads are re-encoded as JPEG.
package imaging
