// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

/*
Package tfrecord reads and writes TFRecord files holding tf.train.Example
messages with int64 features.

Each record is framed as:

	uint64 length (little endian)
	uint32 masked CRC-32C of length
	byte   data[length]
	uint32 masked CRC-32C of data

Example payloads are encoded with protowire, so no generated protobuf code is
needed. Only Int64List features are supported, which is all the training
windows use (rating_chunk and label).

A GZIP-compressed file is the same stream run through gzip; NewReader detects
the gzip header and decompresses transparently.
*/
package tfrecord
