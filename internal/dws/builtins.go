package dws

// builtin describes a function provided by the DWScript runtime.
type builtin struct {
	Name      string
	Signature string
	Doc       string
}

// builtins lists the runtime functions offered in completions, in display order.
var builtins = []builtin{
	{"Abs", "Abs(value: Float): Float", "Returns the absolute value of a number"},
	{"Ceil", "Ceil(value: Float): Integer", "Rounds a number up to the nearest integer"},
	{"Chr", "Chr(code: Integer): Char", "Returns the character for a character code"},
	{"Copy", "Copy(str: String, index, count: Integer): String", "Returns a substring starting at index with the specified length"},
	{"Cos", "Cos(angle: Float): Float", "Returns the cosine of an angle in radians"},
	{"Date", "Date(): DateTime", "Returns the current date"},
	{"Dec", "Dec(var x: Integer; decrement: Integer = 1)", "Decrements an ordinal variable"},
	{"Exp", "Exp(value: Float): Float", "Returns e raised to a power"},
	{"FloatToStr", "FloatToStr(value: Float): String", "Converts a float value to a string"},
	{"Floor", "Floor(value: Float): Integer", "Rounds a number down to the nearest integer"},
	{"FormatDateTime", "FormatDateTime(format: String, dt: DateTime): String", "Formats a date and time value"},
	{"High", "High(arr: Array): Integer", "Returns the highest index of an array"},
	{"Inc", "Inc(var x: Integer; increment: Integer = 1)", "Increments an ordinal variable"},
	{"IntToStr", "IntToStr(value: Integer): String", "Converts an integer value to a string"},
	{"Length", "Length(str: String): Integer", "Returns the length of a string or array"},
	{"Ln", "Ln(value: Float): Float", "Returns the natural logarithm"},
	{"Low", "Low(arr: Array): Integer", "Returns the lowest index of an array"},
	{"LowerCase", "LowerCase(str: String): String", "Converts a string to lowercase"},
	{"Now", "Now(): DateTime", "Returns the current date and time"},
	{"Ord", "Ord(ch: Char): Integer", "Returns the ordinal value of a character"},
	{"Pos", "Pos(subStr, str: String): Integer", "Returns the position of a substring within a string"},
	{"Print", "Print(text: String)", "Prints text to the console without a newline"},
	{"PrintLn", "PrintLn(text: String)", "Prints a line of text to the console"},
	{"Random", "Random(): Float", "Returns a random number between 0 and 1"},
	{"Randomize", "Randomize()", "Seeds the random number generator"},
	{"Round", "Round(value: Float): Integer", "Rounds a number to the nearest integer"},
	{"SetLength", "SetLength(arr: Array, length: Integer)", "Sets the length of a dynamic array"},
	{"Sin", "Sin(angle: Float): Float", "Returns the sine of an angle in radians"},
	{"Sqr", "Sqr(value: Float): Float", "Returns the square of a number"},
	{"Sqrt", "Sqrt(value: Float): Float", "Returns the square root of a number"},
	{"StrToFloat", "StrToFloat(text: String): Float", "Converts a string to a float value"},
	{"StrToInt", "StrToInt(text: String): Integer", "Converts a string to an integer value"},
	{"Tan", "Tan(angle: Float): Float", "Returns the tangent of an angle in radians"},
	{"Time", "Time(): DateTime", "Returns the current time"},
	{"Trim", "Trim(str: String): String", "Removes leading and trailing whitespace from a string"},
	{"Trunc", "Trunc(value: Float): Integer", "Truncates a number to an integer"},
	{"UpperCase", "UpperCase(str: String): String", "Converts a string to uppercase"},
}

// builtinTypes are the predeclared type names.
var builtinTypes = []string{
	"Boolean", "Byte", "Cardinal", "Char", "Currency", "DateTime", "Double",
	"Extended", "Float", "Int64", "Integer", "Single", "String", "TClass",
	"TObject", "UInt64", "Variant", "Word",
}

// reserved are the words highlighted as keywords. Words that may also be used
// as identifiers, such as read and write, are left out.
var reserved = map[string]bool{
	"and": true, "array": true, "as": true, "begin": true, "break": true,
	"case": true, "class": true, "const": true, "constructor": true,
	"continue": true, "destructor": true, "div": true, "do": true,
	"downto": true, "else": true, "end": true, "except": true, "exit": true,
	"finally": true, "for": true, "function": true, "if": true,
	"implementation": true, "in": true, "inherited": true, "interface": true,
	"is": true, "mod": true, "not": true, "of": true, "or": true,
	"private": true, "procedure": true, "program": true, "property": true,
	"protected": true, "public": true, "published": true, "raise": true,
	"record": true, "repeat": true, "set": true, "shl": true, "shr": true,
	"then": true, "to": true, "try": true, "type": true, "unit": true,
	"until": true, "uses": true, "var": true, "while": true, "with": true,
	"xor": true,
}
