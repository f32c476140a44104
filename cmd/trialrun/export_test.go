package main

var NewApp = newApp
var ParseGSURI = parseGSURI
