package mcpserver

// PlaceholderReference documents the placeholders expanded in command
// paths, template content and snippets.
const PlaceholderReference = `# Placeholder Reference

Custom commands expand placeholders in note paths, template content and
insert snippets. Unknown placeholders are left untouched.

## Date

| Placeholder          | Result                                   |
|----------------------|------------------------------------------|
| ` + "`{{date}}`" + `           | reference date as YYYY-MM-DD             |
| ` + "`{{date:FMT}}`" + `       | reference date in FMT                    |
| ` + "`{{date+N}}`" + `         | N days after the reference date          |
| ` + "`{{date-N:FMT}}`" + `     | N days before, in FMT                    |
| ` + "`{{year}}`" + `           | 4-digit year                             |
| ` + "`{{month}}`" + `          | month, 2 digits                          |
| ` + "`{{day}}`" + `            | day of month, 2 digits                   |
| ` + "`{{weekday}}`" + `        | weekday name (Monday)                    |
| ` + "`{{monthName}}`" + `      | month name (January)                     |

The reference date is today, or the date picked for a create-with-date
command.

## Time

| Placeholder      | Result                      |
|------------------|-----------------------------|
| ` + "`{{time}}`" + `       | current time as HH:mm       |
| ` + "`{{time:FMT}}`" + `   | current time in FMT         |

Time placeholders always use the current time.

## Format directives

` + "```" + `
date:FMT                    time:FMT
YYYY  4-digit year          HH  24-hour, 2 digits
MM    month, 2 digits       hh  12-hour, 2 digits
DD    day, 2 digits         mm  minute, 2 digits
dddd  weekday name          ss  second, 2 digits
ddd   weekday, 3 letters    A   AM or PM
mmmm  month name
mmm   month, 3 letters
` + "```" + `

Directives are case-sensitive. A date format only knows the date
directives and a time format only knows the time directives, so
` + "`{{date:YYYY Agenda}}`" + ` keeps its "A". Any other character is copied as-is.

## Examples

- ` + "`Daily/{{date}}`" + ` becomes ` + "`Daily/2024-03-15`" + `
- ` + "`{{date-1:dddd}}`" + ` becomes ` + "`Thursday`" + `
- ` + "`Meeting at {{time:hh:mm A}}`" + ` becomes ` + "`Meeting at 02:05 PM`" + `
`
