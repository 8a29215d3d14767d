// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

/*
Package shard writes window lists as fixed-size shard files.

Windows are cut into consecutive blocks of ShardSize (the last block may be
smaller) and block i is written to

	{base}_{i}_{count}{ext}

where count is the number of windows actually in the file. A reader can
therefore check a listing for completeness without decoding anything, and
ParseShardName recovers the parts.

Two encodings are available:

  - tfrecord: TFRecord framing around tf.train.Example messages with int64
    features rating_chunk (the context) and label. Extension .tfrec.
  - jsonl: one {"context":[...],"label":n} object per line. Extension .jsonl.

With gzip compression the whole file is compressed. TFRecord files keep their
extension, matching TensorFlow's GZIP TFRecord convention; JSONL files gain
".gz".
*/
package shard
