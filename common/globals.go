package common

// AblaVersion is the current compiler version as a string.
const AblaVersion string = "0.1.0"

// AblaProfileFileName is the name of Abla project profile files.
const AblaProfileFileName string = "abla.toml"

// AblaFileExt is the file extension for an Abla source file.
const AblaFileExt string = ".abla"

// MainFuncName is the name of the user entry point function.
const MainFuncName string = "main"

// UserMainFuncName is the name the user entry point is renamed to so that a
// process entry wrapper can take the name `main`.
const UserMainFuncName string = "__abla_main"
