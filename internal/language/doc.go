// Package language maps OCR language settings onto golang.org/x/text
// language tags and guesses the script of recognized text.
package language
