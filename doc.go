/*
Package honeytable implements the on-disk immutable sorted table reader used
by a probabilistic full-text search engine's storage backend: prefix-
compressed keys, three interchangeable index structures for accelerated
lookup, and optional per-value compression.

Data Structure Documentation

Table

A table is a data region followed by an index region, an optional filter
block, and a fixed-size footer.

    Table layout:
    +-------------+--------------+---------------+--------+
    | data region | index region | filter (opt.) | footer |
    +-------------+--------------+---------------+--------+

    Footer (24 bytes):
    +---------------+--------------------+------------+
    | root (8 LE)   | filter_start (8 LE) | magic (8)  |
    +---------------+--------------------+------------+

Data region

A sequence of entries in strictly ascending key order. Keys are prefix-
compressed against the previous key; the first entry's key is stored in
full.

    First entry:
    +-------------+-----------+------------+----------+
    | key_len (1) | key bytes | val header | val bytes |
    +-------------+-----------+------------+----------+

    Subsequent entries:
    +------------+-----------+-----------+------------+----------+
    | reuse (1)  | tail (1)  | tail bytes| val header | val bytes |
    +------------+-----------+-----------+------------+----------+

val header is a VarInt whose low bit is a compressed flag and whose
remaining bits give the on-disk length of the value bytes that follow.

Index region

Begins at root. The first byte is a type tag:

  - 0x00 array index:   [type][min_byte][range][pointer_0..pointer_range]
  - 0x01 binary-chop:   [type][count][ (prefix, pointer) * count ]
  - 0x02 skiplist:      [type][ (reuse, tail, pointer) ... ] to filter_start

Filter block

An optional bloom filter over all keys in the table, consulted by Find to
short-circuit definite misses without touching the index.
*/
package honeytable
