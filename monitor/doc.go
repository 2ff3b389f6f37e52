/*
Package monitor samples host resource usage during CI runs into a CSV log and
reduces such logs into summaries.

A monitoring session consists of a [Monitor] loop that periodically takes a
[Sample] using a [Sampler] and appends it to a [LogWriter]. Background sessions
are tracked using a [Session] pid file, so that a later invocation can stop
them. After the session has ended, [ReadLog] and [Summarize] reduce the log
into minimum, average and maximum values per metric, together with the top
resource consumers at the CPU and memory peaks.

The log is a CSV file with a header row; see [Header] for its columns. Reading
maps columns by their header names, so logs lacking some of the columns still
can be summarized.
*/
package monitor
