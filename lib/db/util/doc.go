// Package util provides helpers shared by the db package, mainly deep
// cloning of JSON documents. The engine never hands out references to its
// stored state; every read and every returned write result goes through
// these clone helpers.
package util
