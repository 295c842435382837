package internal

// Version is the callical release version
const Version = "0.1.0"
