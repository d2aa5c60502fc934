// Package schemawash provides specification-driven cleaning machinery
// for nested metadata records (such as works from the DataCite API).
//
// A cleaning specification is a YAML document that binds named cleaner
// functions to paths into a record.  The core code is in packages
// 'core', 'resolve', and 'cleaners'; the batch pipeline is in 'wash';
// and some command-line tools are in 'cmd'.
package schemawash
