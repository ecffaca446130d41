// Package remote runs commands against an SSH endpoint and provides the
// remote destination-path completion used by the copy dialog.
package remote
