// Package conv coerces decoded JSON scalars (text, numbers, booleans, big
// numbers) into the primitive, date, duration, big number and enum types of
// a target field. Blank text converts to the zero value of non text types.
package conv
