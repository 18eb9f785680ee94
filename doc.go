// Package qrscan locates and decodes QR Model 2 symbols from raw pixel
// buffers: grayscale conversion, a multi-strategy binarizer bank, finder
// detection, geometric grouping, perspective correction, grid sampling,
// and Reed-Solomon-corrected matrix decoding.
//
// The package never touches the filesystem or the network; host
// collaborators own image decoding, configuration sources, and CLI
// framing (see cmd/qrscan).
package qrscan
