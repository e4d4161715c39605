// Package language normalizes the free-form language values providers
// report (ISO 639-1 and 639-2 codes, English names) to ISO 639-1 codes.
package language
