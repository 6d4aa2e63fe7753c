/*
Package launch resolves a container's identity and render configuration.

A Builder collects creation arguments and produces an immutable domain.Descriptor:
the URL is mandatory, the unique id is taken verbatim when given and otherwise
derived from the URL, and every other field has a documented default. Descriptors
travel to the host as plain maps (ToExtras / FromExtras) or through a
ports.DescriptorStore managed by a Manager.
*/
package launch
