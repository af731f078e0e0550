/*
Package brc aggregates large streams of "<key>;<value>\n" measurement
records into per-key count, minimum, mean and maximum, without floating
point arithmetic and without allocating per record.

Input Documentation

Record

A record is a key of 1 to 100 bytes, a ';' delimiter, a fixed-format
decimal and a '\n' terminator. The terminator of the final record is optional.

    +--------------------+-----+---------------+------+
    | key (1-100 bytes)  |  ;  | value (3-5 b) |  \n  |
    +--------------------+-----+---------------+------+

Value

Values have an optional sign, one or two integer digits, a '.' and exactly
one fractional digit. They are held in tenths, as int32.

    +-------------+----------------------+-----+------------------+
    | '-' (opt.)  | 1-2 integer digits   |  .  | fractional digit |
    +-------------+----------------------+-----+------------------+

Table Documentation

A Table stores one slot per key in a flat, power-of-two sized array. Slots
are located by linear probing from hash & (capacity-1) and matched by hash
and full key comparison. Key bytes are copied into a shared arena on first
insertion, slots refer to them by offset and length.

    Slots:
    +-----------------------------------------+-------+---------+
    | hash | key offset | key len | min | max | sum | count | ... |
    +-----------------------------------------+-------+---------+

    Key arena:
    +---------+---------+---------+-------+
    |  key 1  |  key 2  |  key 3  |  ...  |
    +---------+---------+---------+-------+

A table doubles once more than half of its slots are occupied. Keys are never
removed.

Output

Results are sorted by byte-wise key order. The mean is rounded half up to
the nearest tenth and all values are printed with exactly one decimal place:

    {Berlin=-5.0/-5.0/-5.0, Hamburg=10.1/11.2/12.3}
*/
package brc
