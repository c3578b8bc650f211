/*
Package runner implements chester's three stage runners: Check and Tests
each invoke one configured command under the repo root and report
Success/Failure; Coverage additionally captures stdout and hands it to a
coverage.Parser.

Every runner sets Cmd.Dir to the root, leaves Cmd.Env nil to inherit the
parent environment, and never attaches Cmd.Stderr: only the exit status
(and, for coverage, stdout) is part of the subprocess contract, so stderr
is left unset and suppressed.
*/
package runner
