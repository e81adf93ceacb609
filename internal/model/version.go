package model

// Version is the nqtv release, compared against GitHub tags by --update.
const Version = "0.3.0"
