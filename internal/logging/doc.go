/*
Package logging provides leveled logging for the asset browser.

Log levels are controlled via environment variables:

	DEBUG=true        enables debug logging
	LOG_LEVEL=debug   same effect; also accepts info, warn, error

All functions are safe for concurrent use and write through the standard
library log package, so the usual flags and output redirection apply.
*/
package logging
